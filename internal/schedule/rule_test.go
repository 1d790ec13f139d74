package schedule

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validExpenseRule() Rule {
	categoryID := uuid.Must(uuid.NewV4())
	return Rule{
		ID:          uuid.Must(uuid.NewV4()),
		HouseholdID: uuid.Must(uuid.NewV4()),
		CreatedBy:   uuid.Must(uuid.NewV4()),
		AccountID:   uuid.Must(uuid.NewV4()),
		CategoryID:  &categoryID,
		Type:        TransactionTypeExpense,
		Amount:      decimal.RequireFromString("25.00"),
		Description: "Gym membership",
		Cadence:     Monthly{DayOfMonth: 1},
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRuleValidate_ValidExpense(t *testing.T) {
	rule := validExpenseRule()
	assert.NoError(t, rule.Validate())
}

func TestRuleValidate_ValidIncome(t *testing.T) {
	rule := validExpenseRule()
	rule.Type = TransactionTypeIncome
	rule.CategoryID = nil
	assert.NoError(t, rule.Validate())
}

func TestRuleValidate_IncomeWithCategoryRejected(t *testing.T) {
	rule := validExpenseRule()
	rule.Type = TransactionTypeIncome

	err := rule.Validate()
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRuleValidate_ExpenseWithoutCategoryRejected(t *testing.T) {
	rule := validExpenseRule()
	rule.CategoryID = nil

	err := rule.Validate()
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRuleValidate_NonPositiveAmountRejected(t *testing.T) {
	rule := validExpenseRule()
	rule.Amount = decimal.Zero
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)

	rule.Amount = decimal.RequireFromString("-5.00")
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)
}

func TestRuleValidate_MissingCadenceRejected(t *testing.T) {
	rule := validExpenseRule()
	rule.Cadence = nil
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)
}

func TestRuleValidate_DayRanges(t *testing.T) {
	rule := validExpenseRule()

	rule.Cadence = Monthly{DayOfMonth: 0}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)

	rule.Cadence = Monthly{DayOfMonth: 32}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)

	rule.Cadence = Weekly{Weekday: time.Weekday(7)}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidRule)

	rule.Cadence = Weekly{Weekday: time.Saturday}
	assert.NoError(t, rule.Validate())
}

// -- cadence encode/decode --

func TestDecodeCadence_Weekly(t *testing.T) {
	day := int16(1)

	cadence, err := DecodeCadence(FrequencyWeekly, &day, nil)
	assert.NoError(t, err)
	assert.Equal(t, Weekly{Weekday: time.Monday}, cadence)
}

func TestDecodeCadence_Monthly(t *testing.T) {
	day := int16(31)

	cadence, err := DecodeCadence(FrequencyMonthly, nil, &day)
	assert.NoError(t, err)
	assert.Equal(t, Monthly{DayOfMonth: 31}, cadence)
}

func TestDecodeCadence_MismatchedColumnsRejected(t *testing.T) {
	day := int16(2)

	_, err := DecodeCadence(FrequencyWeekly, nil, &day)
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = DecodeCadence(FrequencyMonthly, &day, nil)
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = DecodeCadence(FrequencyWeekly, &day, &day)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestEncodeCadence_RoundTrip(t *testing.T) {
	frequency, dayOfWeek, dayOfMonth := EncodeCadence(Weekly{Weekday: time.Friday})
	assert.Equal(t, FrequencyWeekly, frequency)
	assert.Nil(t, dayOfMonth)
	decoded, err := DecodeCadence(frequency, dayOfWeek, dayOfMonth)
	assert.NoError(t, err)
	assert.Equal(t, Weekly{Weekday: time.Friday}, decoded)

	frequency, dayOfWeek, dayOfMonth = EncodeCadence(Monthly{DayOfMonth: 15})
	assert.Equal(t, FrequencyMonthly, frequency)
	assert.Nil(t, dayOfWeek)
	decoded, err = DecodeCadence(frequency, dayOfWeek, dayOfMonth)
	assert.NoError(t, err)
	assert.Equal(t, Monthly{DayOfMonth: 15}, decoded)
}
