package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressDomains(t *testing.T) {
	assert.Equal(t, AddressDomainUser, Address("user:alice").Domain())
	assert.Equal(t, AddressDomainTreasury, Address("dao:abc123").Domain())
	assert.Equal(t, AddressDomainVote, Address("vote:abc123").Domain())
	assert.Equal(t, AddressDomainPool, Address("pool:abc123").Domain())

	assert.False(t, Address("user:alice").IsDerived())
	assert.True(t, Address("vote:abc123").IsDerived())
}

func TestAddressValidity(t *testing.T) {
	assert.True(t, Address("user:alice").IsValid())
	assert.False(t, Address("").IsValid())
	assert.False(t, Address("user:al ice").IsValid())
	assert.False(t, Address("user:al\nice").IsValid())
}
