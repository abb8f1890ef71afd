package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	byName := map[string]Collection{}
	for _, c := range Collections() {
		byName[c.Name] = c
		assert.NotEmpty(t, c.Indexes, c.Name)
		assert.Contains(t, c.Validator, "$jsonSchema", c.Name)
	}

	assert.ElementsMatch(t, []string{"venues", "reservations", "reservation_locks"}, keys(byName))
}

func TestVenueNameKeyIsUnique(t *testing.T) {
	idx := VenuesIndexes[0]
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.Equal(t, bson.D{{Key: "name_key", Value: 1}}, idx.Keys)
}

func TestLocksExpireThroughTTLIndex(t *testing.T) {
	idx := ReservationLocksIndexes[0]
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}

func TestReservationConflictIndexLeadsWithVenueAndDate(t *testing.T) {
	keys := ReservationsIndexes[0].Keys.(bson.D)
	require.GreaterOrEqual(t, len(keys), 2)
	assert.Equal(t, "venue_id", keys[0].Key)
	assert.Equal(t, "date", keys[1].Key)
}

func keys(m map[string]Collection) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
