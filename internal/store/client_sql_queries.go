package store

const (
	getDocument = `SELECT id, type, access, created_by, parent_id, created_at, updated_at, deleted, fields, rev, pushed_seq
		FROM documents
		WHERE id = ?;`

	getDocumentHead = `SELECT rev, pushed_seq, deleted
		FROM documents
		WHERE id = ?;`

	insertDocument = `INSERT INTO documents (
			id,
			type,
			access,
			created_by,
			parent_id,
			created_at,
			updated_at,
			deleted,
			fields,
			rev,
			pushed_seq,
			seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?);`

	updateDocument = `UPDATE documents
		SET type = ?, access = ?, created_by = ?, parent_id = ?, created_at = ?, updated_at = ?, deleted = ?, fields = ?, rev = ?, seq = ?
		WHERE id = ?;`

	softDeleteDocument = `UPDATE documents
		SET deleted = 1, updated_at = ?, rev = ?, seq = ?
		WHERE id = ?;`

	changesSince = `SELECT id, type, access, created_by, parent_id, created_at, updated_at, deleted, fields, rev, pushed_seq, seq
		FROM documents
		WHERE seq > ?
		ORDER BY seq ASC;`

	incrementSequence = `UPDATE sync_sequence SET seq = seq + 1 WHERE id = 1;`

	selectSequence = `SELECT seq FROM sync_sequence WHERE id = 1;`
)
