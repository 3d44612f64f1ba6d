package bm25

import "encoding/json"

// Marshal serializes the index to a single self-describing JSON blob
//. Document frequencies are derived, not stored, and are rebuilt on
// Unmarshal so the round trip stays lossless without duplicating state.
func (idx *Index) Marshal() ([]byte, error) {
	return json.Marshal(idx)
}

// Unmarshal reloads an index previously produced by Marshal, rebuilding the
// derived document-frequency tables.
func Unmarshal(data []byte) (*Index, error) {
	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	idx.reindexDF()
	return idx, nil
}
