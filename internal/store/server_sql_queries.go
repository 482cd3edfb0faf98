package store

// Authoritative server-side queries. Placeholders follow PostgreSQL $N
// numbering; access is a JSONB array of principals and visibility checks use
// the jsonb "contains key" operator.
const (
	getServerDocument = `
		SELECT id, type, access, created_by, parent_id, created_at, updated_at, deleted, fields
		FROM documents
		WHERE id = $1;`

	findVisibleDocuments = `
		SELECT id, type, access, created_by, parent_id, created_at, updated_at, deleted, fields
		FROM documents
		WHERE type = $1
		  AND deleted = FALSE
		  AND access ? $2
		ORDER BY updated_at;`

	insertServerDocument = `
		INSERT INTO documents (id, type, access, created_by, parent_id, created_at, updated_at, deleted, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	updateServerDocument = `
		UPDATE documents
		SET access = $2, parent_id = $3, updated_at = $4, deleted = $5, fields = $6
		WHERE id = $1;`

	createUser = `
		INSERT INTO users (principal, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING principal, name, password_hash, created_at;`

	findUserByPrincipal = `
		SELECT principal, name, password_hash, created_at
		FROM users
		WHERE principal = $1;`
)
