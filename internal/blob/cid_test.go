package blob

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "claimchain/pkg/domain-errors"
)

func TestComputeCIDIsRawSHA256V1(t *testing.T) {
	id, err := ComputeCID([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id.Version())
	assert.Equal(t, uint64(cid.Raw), id.Type())
	assert.Equal(t, "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq", id.String())

	parsed, err := ParseCID(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))
}

func TestParseCIDRejectsGarbage(t *testing.T) {
	_, err := ParseCID("not-a-cid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
