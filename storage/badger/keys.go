package badger

import (
	"github.com/poiesic/assessor/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "coll:"
	chunkPrefix      = "chunk:"
)

// makeCollectionKey generates the marker key of a named collection.
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

// makeChunkPrefix generates the prefix shared by every record of a collection.
// Format: chunk:collection:
func makeChunkPrefix(collection string) []byte {
	return []byte(chunkPrefix + collection + ":")
}

// makeChunkKey generates the key of a record.
// Format: chunk:collection:<16 id bytes>
func makeChunkKey(collection string, id core.ChunkID) []byte {
	prefix := makeChunkPrefix(collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id[:])
	return buf
}

// chunkIDFromKey recovers the record ID from a key built by makeChunkKey.
func chunkIDFromKey(key []byte) (core.ChunkID, bool) {
	var id core.ChunkID
	if len(key) < len(id) {
		return id, false
	}
	copy(id[:], key[len(key)-len(id):])
	return id, true
}
