package services

import (
	"path/filepath"
	"testing"

	"dailyread/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "drafts.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Draft{}))
	return db
}

func TestDraftServiceGetMissing(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	draft, err := svc.Get("s1")
	require.NoError(t, err)
	assert.Zero(t, draft.ID)
	assert.False(t, draft.Open)
	assert.Equal(t, []string{}, draft.Category)
}

func TestDraftServiceOpenClose(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	_, err := svc.SetOpen("s1", true)
	require.NoError(t, err)
	draft, err := svc.Get("s1")
	require.NoError(t, err)
	assert.True(t, draft.Open)

	_, err = svc.SetOpen("s1", false)
	require.NoError(t, err)
	draft, _ = svc.Get("s1")
	assert.False(t, draft.Open)
}

func TestDraftServiceAddCategory(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	draft, err := svc.AddCategory("s1", models.DraftForm{Title: "T", PendingCategory: "tech"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TECH"}, draft.Category)
	assert.Empty(t, draft.PendingCategory)

	draft, err = svc.AddCategory("s1", models.DraftForm{Title: "T", Category: draft.Category, PendingCategory: "TECH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TECH"}, draft.Category)
	assert.Equal(t, "TECH", draft.PendingCategory)

	stored, err := svc.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "T", stored.Title)
	assert.Equal(t, []string{"TECH"}, stored.Category)
	assert.True(t, stored.Open)
}

func TestDraftServiceRemoveCategory(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	_, err := svc.RemoveCategory("s1", models.DraftForm{Category: []string{"GO", "WEB"}}, "GO")
	require.NoError(t, err)

	stored, _ := svc.Get("s1")
	assert.Equal(t, []string{"WEB"}, stored.Category)
}

func TestDraftServiceUpdateKeepsOpenState(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	_, err := svc.Update("s1", models.DraftForm{Title: "closed"})
	require.NoError(t, err)
	stored, _ := svc.Get("s1")
	assert.False(t, stored.Open)
	assert.Equal(t, "closed", stored.Title)

	_, err = svc.Stage("s1", models.DraftForm{Title: "staged"})
	require.NoError(t, err)
	stored, _ = svc.Get("s1")
	assert.True(t, stored.Open)
	assert.Equal(t, "staged", stored.Title)
}

func TestDraftServiceReset(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	// nothing stored yet
	require.NoError(t, svc.Reset("s1"))

	_, err := svc.AddCategory("s1", models.DraftForm{Title: "T", PendingCategory: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.Reset("s1"))

	stored, err := svc.Get("s1")
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Empty(t, stored.Title)
	assert.Empty(t, stored.Category)
	assert.False(t, stored.Open)
}

func TestDraftServiceSessionsAreSeparate(t *testing.T) {
	svc := NewDraftService(newTestDB(t))

	_, err := svc.Stage("a", models.DraftForm{Title: "mine"})
	require.NoError(t, err)

	other, err := svc.Get("b")
	require.NoError(t, err)
	assert.Empty(t, other.Title)
	assert.False(t, other.Open)
}
