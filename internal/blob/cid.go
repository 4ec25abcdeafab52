package blob

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	dErrors "claimchain/pkg/domain-errors"
)

// ComputeCID returns the CIDv1 (raw codec, sha2-256) addressing data.
func ComputeCID(data []byte) (cid.Cid, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParseCID parses a CID string, reporting malformed input as a validation error.
func ParseCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, dErrors.Wrap(err, dErrors.CodeValidation, "invalid cid")
	}
	return c, nil
}
