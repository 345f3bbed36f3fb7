package treasury

import (
	"strings"
	"testing"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestComputeBalance(t *testing.T) {
	db := newTestDB(t)

	branch := models.Branch{Name: "Kadıköy"}
	require.NoError(t, db.Create(&branch).Error)

	logs := []models.TreasuryLog{
		{BranchID: branch.ID, Type: models.TreasuryIn, Source: models.TreasurySourceSale, Amount: 500},
		{BranchID: branch.ID, Type: models.TreasuryIn, Source: models.TreasurySourceManual, Amount: 100},
		{BranchID: branch.ID, Type: models.TreasuryOut, Source: models.TreasurySourceExpense, Amount: 90},
		{BranchID: branch.ID, Type: models.TreasuryOut, Source: models.TreasurySourceStaffPayment, Amount: 50},
	}
	for i := range logs {
		require.NoError(t, db.Create(&logs[i]).Error)
	}

	resp, err := ComputeBalance(db, &branch.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(600), resp.TotalIn)
	assert.Equal(t, float64(140), resp.TotalOut)
	assert.Equal(t, float64(460), resp.Balance)
}

func TestComputeBalanceScopesByBranch(t *testing.T) {
	db := newTestDB(t)

	b1 := models.Branch{Name: "Kadıköy"}
	b2 := models.Branch{Name: "Beşiktaş"}
	require.NoError(t, db.Create(&b1).Error)
	require.NoError(t, db.Create(&b2).Error)

	require.NoError(t, db.Create(&models.TreasuryLog{BranchID: b1.ID, Type: models.TreasuryIn, Source: models.TreasurySourceSale, Amount: 300}).Error)
	require.NoError(t, db.Create(&models.TreasuryLog{BranchID: b2.ID, Type: models.TreasuryIn, Source: models.TreasurySourceSale, Amount: 200}).Error)
	require.NoError(t, db.Create(&models.TreasuryLog{BranchID: b2.ID, Type: models.TreasuryOut, Source: models.TreasurySourceExpense, Amount: 50}).Error)

	r1, err := ComputeBalance(db, &b1.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(300), r1.Balance)

	r2, err := ComputeBalance(db, &b2.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(150), r2.Balance)

	// Merkez görünümü: tüm şubelerin toplamı
	all, err := ComputeBalance(db, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(450), all.Balance)
}

func TestComputeBalanceEmptyLedger(t *testing.T) {
	db := newTestDB(t)

	resp, err := ComputeBalance(db, nil)
	require.NoError(t, err)
	assert.Zero(t, resp.TotalIn)
	assert.Zero(t, resp.TotalOut)
	assert.Zero(t, resp.Balance)
}
