package telegram

import (
	"context"
	"testing"

	"github.com/EmanJemal/byfu/internal/domain"
	"github.com/EmanJemal/byfu/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(v string) *string { return &v }

func seedProduct(t *testing.T, s *Service, p domain.Product) string {
	t.Helper()
	key, err := s.products.Create(context.Background(), &p)
	require.NoError(t, err)
	return key
}

func TestEditFlowCommitsOnFinish(t *testing.T) {
	s, api, db := newTestService(t)
	ctx := context.Background()

	key := seedProduct(t, s, domain.Product{
		Name: "Chair", Code: "C1", Cost: str("100"), Selling: str("150"),
		AmountStore: str("5"), AmountSuq: str("3"),
	})

	drive(s,
		command(staffChat, "edit"),
		text(staffChat, "C1"),
		text(staffChat, "5"),   // pick store amount
		text(staffChat, "12"),  // new value
		text(staffChat, "1"),   // pick name
		text(staffChat, "Big Chair"),
		text(staffChat, "8"), // finish
	)

	p, err := repository.NewProducts(db).Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Big Chair", p.Name)
	require.NotNil(t, p.AmountStore)
	assert.Equal(t, "12", *p.AmountStore)
	require.NotNil(t, p.AmountSuq)
	assert.Equal(t, "3", *p.AmountSuq)
	assert.NotZero(t, p.UpdatedAt)

	require.Len(t, api.cards(adminChat), 0) // no image on record, card is text
	adminTexts := api.texts(adminChat)
	require.Len(t, adminTexts, 1)
	assert.Contains(t, adminTexts[0], "Product Updated")
	assert.Contains(t, adminTexts[0], "Big Chair")

	assert.Contains(t, api.lastText(staffChat), "updated and sent to admin")
	assert.Equal(t, 0, s.sessions.Len())
}

func TestEditUnknownCodeEndsFlow(t *testing.T) {
	s, api, _ := newTestService(t)

	drive(s, command(staffChat, "edit"), text(staffChat, "NOPE"))

	assert.Contains(t, api.lastText(staffChat), "Product code check")
	assert.Equal(t, 0, s.sessions.Len())
}

func TestEditMenuRejectsInvalidChoice(t *testing.T) {
	s, api, _ := newTestService(t)

	seedProduct(t, s, domain.Product{Name: "Chair", Code: "C1"})
	drive(s, command(staffChat, "edit"), text(staffChat, "C1"))

	drive(s, text(staffChat, "9"))
	assert.Contains(t, api.lastText(staffChat), "1 to 8")
	sess := s.sessions.Get(staffChat)
	require.NotNil(t, sess)
	assert.Equal(t, stepMenu, sess.Step)

	drive(s, text(staffChat, "banana"))
	assert.Contains(t, api.lastText(staffChat), "1 to 8")
	assert.Equal(t, stepMenu, s.sessions.Get(staffChat).Step)
}

func TestEditNullableFieldStaysAbsentUntouched(t *testing.T) {
	s, _, db := newTestService(t)
	ctx := context.Background()

	key := seedProduct(t, s, domain.Product{Name: "Chair", Code: "C1"})

	drive(s,
		command(staffChat, "edit"),
		text(staffChat, "C1"),
		text(staffChat, "8"),
	)

	var raw map[string]interface{}
	require.NoError(t, db.Get(ctx, "products/"+key, &raw))
	_, hasCost := raw["cost"]
	assert.False(t, hasCost)
}

func TestEditCallbackEntryIsAdminOnly(t *testing.T) {
	s, api, _ := newTestService(t)

	seedProduct(t, s, domain.Product{Name: "Chair", Code: "C1"})

	drive(s, callback(staffChat, "admin_edit_C1"))
	assert.Equal(t, 0, s.sessions.Len())

	api.reset()
	drive(s, callback(adminChat, "admin_edit_C1"))
	sess := s.sessions.Get(adminChat)
	require.NotNil(t, sess)
	assert.Equal(t, FlowEdit, sess.Flow)
	assert.Equal(t, stepMenu, sess.Step)
	assert.Contains(t, api.lastText(adminChat), "1) ስም: Chair")
}

func TestEditCallbackUnknownProduct(t *testing.T) {
	s, _, _ := newTestService(t)

	drive(s, callback(adminChat, "admin_edit_MISSING"))
	assert.Equal(t, 0, s.sessions.Len())
}
