// Package contentid derives and checks the IPFS content identifiers used as
// object ids by the self-hosted stores.
package contentid

import (
	"fmt"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

var prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   mh.SHA2_256,
	MhLength: -1,
}

// Compute returns the CIDv1 (raw codec, sha2-256) of data.
func Compute(data []byte) (string, error) {
	c, err := prefix.Sum(data)
	if err != nil {
		return "", fmt.Errorf("compute content id: %w", err)
	}
	return c.String(), nil
}

// Validate reports whether id parses as a CID of any version.
func Validate(id string) error {
	if _, err := cid.Decode(id); err != nil {
		return fmt.Errorf("invalid content id %q: %w", id, err)
	}
	return nil
}
