package tsio_test

import (
	"encoding/binary"
	"encoding/json"
	"io/ioutil"
)

func writeFile(path string, data []byte) error {
	return ioutil.WriteFile(path, data, 0644)
}

// bumpFormatVersion rewrites a container's manifest in place with an
// absurdly high format_version, exercising the forward-compatibility
// refusal path without hand-constructing a whole container.
func bumpFormatVersion(t interface{ Fatalf(string, ...interface{}) }, path string) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	manifestLen := binary.LittleEndian.Uint64(raw[4:12])
	manifestBytes := raw[12 : 12+manifestLen]
	rest := raw[12+manifestLen:]

	var m map[string]interface{}
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	m["format_version"] = 999999

	newManifestBytes, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("re-encode manifest: %v", err)
	}

	out := make([]byte, 0, 12+len(newManifestBytes)+len(rest))
	out = append(out, raw[:4]...)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(newManifestBytes)))
	out = append(out, lenBuf[:]...)
	out = append(out, newManifestBytes...)
	out = append(out, rest...)

	if err := ioutil.WriteFile(path, out, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
