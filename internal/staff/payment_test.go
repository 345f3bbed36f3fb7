package staff

import (
	"regexp"
	"strings"
	"testing"
	"time"

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

func TestGenerateUsernamePrefixes(t *testing.T) {
	pattern := regexp.MustCompile(`^[ASE]-\d{6}$`)

	cases := []struct {
		role   models.UserRole
		prefix string
	}{
		{models.RoleAdmin, "A-"},
		{models.RoleGeneralManager, "A-"},
		{models.RoleITSupport, "A-"},
		{models.RoleSupervisor, "S-"},
		{models.RoleEmployee, "E-"},
	}
	for _, tc := range cases {
		got := GenerateUsername(tc.role)
		assert.True(t, strings.HasPrefix(got, tc.prefix), "rol %s: %s", tc.role, got)
		assert.True(t, pattern.MatchString(got), "format bozuk: %s", got)
	}
}

func seedEmployee(t *testing.T, db *gorm.DB) (models.Branch, models.User) {
	t.Helper()
	branch := models.Branch{Name: "Şube " + t.Name()}
	require.NoError(t, db.Create(&branch).Error)

	user := models.User{
		BranchID:     &branch.ID,
		Username:     "E-" + t.Name()[:min(6, len(t.Name()))],
		FullName:     "Ayşe Demir",
		PasswordHash: "x",
		Role:         models.RoleEmployee,
		Salary:       20000,
	}
	require.NoError(t, db.Create(&user).Error)
	return branch, user
}

func TestRecordPaymentSalaryWritesTreasuryOut(t *testing.T) {
	db := newTestDB(t)
	branch, user := seedEmployee(t, db)

	payment := models.StaffPayment{
		UserID:      user.ID,
		PaymentType: models.StaffPaymentSalary,
		Amount:      20000,
		PaymentDate: time.Now(),
	}
	require.NoError(t, RecordPayment(db, &payment))

	require.NotNil(t, payment.BranchID)
	assert.Equal(t, branch.ID, *payment.BranchID)

	var log models.TreasuryLog
	require.NoError(t, db.First(&log, "source = ?", models.TreasurySourceStaffPayment).Error)
	assert.Equal(t, models.TreasuryOut, log.Type)
	assert.Equal(t, float64(20000), log.Amount)
	assert.Equal(t, branch.ID, log.BranchID)
}

func TestRecordPaymentDeductionSkipsTreasury(t *testing.T) {
	db := newTestDB(t)
	_, user := seedEmployee(t, db)

	payment := models.StaffPayment{
		UserID:      user.ID,
		PaymentType: models.StaffPaymentDeduction,
		Amount:      1500,
		PaymentDate: time.Now(),
	}
	require.NoError(t, RecordPayment(db, &payment))

	var logCount int64
	require.NoError(t, db.Model(&models.TreasuryLog{}).Count(&logCount).Error)
	assert.Zero(t, logCount)
}

func TestRecordPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	_, user := seedEmployee(t, db)

	err := RecordPayment(db, &models.StaffPayment{
		UserID:      user.ID,
		PaymentType: models.StaffPaymentSalary,
		Amount:      0,
		PaymentDate: time.Now(),
	})
	require.Error(t, err)

	err = RecordPayment(db, &models.StaffPayment{
		UserID:      user.ID,
		PaymentType: "ikramiye",
		Amount:      100,
		PaymentDate: time.Now(),
	})
	require.Error(t, err)

	err = RecordPayment(db, &models.StaffPayment{
		UserID:      9999,
		PaymentType: models.StaffPaymentSalary,
		Amount:      100,
		PaymentDate: time.Now(),
	})
	require.Error(t, err)
}
