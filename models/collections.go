package models

// Collection describes how one document type participates in sync.
type Collection struct {
	// Type is the collection tag used in ids and sync URLs.
	Type DocType

	// Reconcile enables deletion-by-reconciliation for this collection during
	// the pull stage.
	Reconcile bool

	// AuthoredOnly restricts the push stage to documents whose CreatedBy
	// equals the current principal. This is defense in depth: it prevents
	// re-uploading documents that were merely received from other principals
	// during a prior pull.
	AuthoredOnly bool
}

// Collections is the closed, ordered set of synchronized collections.
var Collections = []Collection{
	{Type: DocTypeList, Reconcile: true, AuthoredOnly: true},
	{Type: DocTypeItem, Reconcile: true, AuthoredOnly: true},
	{Type: DocTypeMark, Reconcile: true, AuthoredOnly: true},
}

// CollectionByType returns the descriptor for t, or false if t is not part of
// the synchronized set.
func CollectionByType(t DocType) (Collection, bool) {
	for _, c := range Collections {
		if c.Type == t {
			return c, true
		}
	}
	return Collection{}, false
}
