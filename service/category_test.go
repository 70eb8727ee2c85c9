package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_CRUD(t *testing.T) {
	f := newFixture(t)

	_, err := f.categories.Create(f.ctx, f.member.ID, f.household.ID, CategoryInput{Name: "交通"})
	requireKind(t, KindForbidden, err)

	c, err := f.categories.Create(f.ctx, f.owner.ID, f.household.ID, CategoryInput{Name: "交通", Description: "地铁公交"})
	require.NoError(t, err)
	assert.Equal(t, f.household.ID, c.HouseholdID)

	_, err = f.categories.Update(f.ctx, f.member.ID, c.ID, CategoryInput{Name: "出行"})
	requireKind(t, KindForbidden, err)
	updated, err := f.categories.Update(f.ctx, f.owner.ID, c.ID, CategoryInput{Name: "出行"})
	require.NoError(t, err)
	assert.Equal(t, "出行", updated.Name)

	_, err = f.categories.Update(f.ctx, f.owner.ID, 9999, CategoryInput{Name: "x"})
	requireKind(t, KindNotFound, err)

	list, err := f.categories.List(f.ctx, f.member.ID, f.household.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.categories.List(f.ctx, f.stranger.ID, f.household.ID)
	requireKind(t, KindForbidden, err)

	err = f.categories.Delete(f.ctx, f.member.ID, c.ID)
	requireKind(t, KindForbidden, err)
	require.NoError(t, f.categories.Delete(f.ctx, f.owner.ID, c.ID))
	err = f.categories.Delete(f.ctx, f.owner.ID, c.ID)
	requireKind(t, KindNotFound, err)
}

func TestCategory_DeleteInUseConflicts(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.owner.ID, "3")

	err := f.categories.Delete(f.ctx, f.owner.ID, f.category.ID)
	requireKind(t, KindConflict, err)
}
