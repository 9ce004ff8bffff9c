package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortItems_StableByOrder(t *testing.T) {
	items := []Item{
		{ID: 1, Title: "b", Order: 2},
		{ID: 2, Title: "a", Order: 0},
		{ID: 3, Title: "c", Order: 2},
		{ID: 4, Title: "d", Order: -1},
	}
	got := SortItems(items)
	ids := make([]uint, len(got))
	for i, it := range got {
		ids[i] = it.ID
	}
	assert.Equal(t, []uint{4, 2, 1, 3}, ids)
	assert.Equal(t, uint(1), items[0].ID, "input untouched")
}

func TestFilterProjects(t *testing.T) {
	projects := []Project{
		{ID: 1, Name: "Website Revamp"},
		{ID: 2, Name: "Mobile", Description: "iOS and Android WEB views"},
		{ID: 3, Name: "Billing"},
	}
	tests := []struct {
		term string
		want []uint
	}{
		{"", []uint{1, 2, 3}},
		{"web", []uint{1, 2}},
		{"  BILL ", []uint{3}},
		{"nothing", []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := []uint{}
			for _, p := range FilterProjects(projects, tt.term) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOwnedBy(t *testing.T) {
	me := &User{ID: 7}
	projects := []Project{
		{ID: 1, OwnerID: 7, Owner: &User{ID: 7}},
		{ID: 2, OwnerID: 8, Owner: &User{ID: 8}},
		{ID: 3, OwnerID: 7},
	}
	assert.Equal(t, 2, OwnedCount(projects, me))
	assert.Equal(t, 0, OwnedCount(projects, nil))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Editor ")
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "42", FormatID(id))

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestDisplayName(t *testing.T) {
	var u *User
	assert.Equal(t, "Unknown", u.DisplayName())
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
}
