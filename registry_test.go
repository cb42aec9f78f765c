package mzident

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIdempotent(t *testing.T) {
	r := NewRegistry()
	id := r.Resolve("Peptide", "P1")
	for i := 0; i < 3; i++ {
		require.Equal(t, id, r.Resolve("Peptide", "P1"))
	}
}

func TestRegistryDistinctKeys(t *testing.T) {
	r := NewRegistry()
	require.NotEqual(t, r.Resolve("Peptide", "P1"), r.Resolve("Peptide", "P2"))
}

func TestRegistryDistinctTypes(t *testing.T) {
	r := NewRegistry()
	require.NotEqual(t, r.Resolve("Peptide", "X"), r.Resolve("Person", "X"))
}

func TestRegistryMintsMonotonically(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, "Enzyme_1", r.Resolve("Enzyme", ""))
	require.Equal(t, "Enzyme_2", r.Resolve("Enzyme", ""))

	// Minting in one type does not advance another.
	require.Equal(t, "Peptide_1", r.Resolve("Peptide", ""))
}

func TestRegistryMintSkipsClaimedOrdinals(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, "Peptide_1", r.Resolve("Peptide", "1"))
	require.Equal(t, "Peptide_2", r.Resolve("Peptide", ""))
}

func TestRegistryMintedIdsResolvableByOrdinal(t *testing.T) {
	r := NewRegistry()
	minted := r.Resolve("SearchDatabase", "")
	require.Equal(t, minted, r.Resolve("SearchDatabase", "1"))
}
