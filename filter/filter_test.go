package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/venmo-go/venmo"
)

func sampleTransaction() venmo.Transaction {
	return venmo.Transaction{
		ID:          "t1",
		Type:        venmo.TransactionPayment,
		Note:        "Pizza night",
		DateCreated: time.Now().AddDate(0, 0, -3),
		Audience:    venmo.PrivacyPublic,
		App:         venmo.App{ID: 1},
		Payment: venmo.Payment{
			Amount: 25.50,
			Actor:  venmo.User{Username: "alice"},
			Target: venmo.PaymentTarget{User: venmo.User{Username: "bob"}},
		},
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("")
	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)

	_, err = Compile("amount >")
	require.ErrorAs(t, err, &compErr)
}

func TestEvaluate(t *testing.T) {
	tx := sampleTransaction()

	tests := []struct {
		expr string
		want bool
	}{
		{`amount > 20`, true},
		{`amount > 100`, false},
		{`contains(note, "pizza")`, true},
		{`startsWith(note, "piz")`, true},
		{`actor == "alice" && target == "bob"`, true},
		{`type == "payment"`, true},
		{`audience == "private"`, false},
		{`device == "iPhone"`, true},
		{`comments == 0`, true},
		{`daysSince(Transaction.DateCreated) <= 7`, true},
		{`Transaction.DateCreated > daysAgo(1)`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)

			got, err := f.Evaluate(tx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNonBoolExpression(t *testing.T) {
	f, err := Compile(`amount + 1`)
	require.NoError(t, err)

	_, err = f.Evaluate(sampleTransaction())
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "t1", evalErr.TransactionID)
}

func TestApply(t *testing.T) {
	small := sampleTransaction()
	small.ID = "small"
	small.Payment.Amount = 5

	big := sampleTransaction()
	big.ID = "big"
	big.Payment.Amount = 250

	f, err := Compile(`amount >= 100`)
	require.NoError(t, err)

	matched, err := f.Apply([]venmo.Transaction{small, big, small})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "big", matched[0].ID)
}

func TestManagerPresets(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterAll(map[string]string{
		"big":    `amount > 100`,
		"recent": `daysSince(Transaction.DateCreated) <= 30`,
	}))

	f, ok := m.Get("big")
	require.True(t, ok)
	assert.Equal(t, `amount > 100`, f.Expression())

	// A preset name resolves to the preset; anything else compiles inline.
	preset, err := m.Resolve("big")
	require.NoError(t, err)
	assert.Same(t, f, preset)

	inline, err := m.Resolve(`note == "rent"`)
	require.NoError(t, err)
	assert.Equal(t, `note == "rent"`, inline.Expression())
}

func TestRegisterAllAtomic(t *testing.T) {
	m := NewManager()
	err := m.RegisterAll(map[string]string{
		"good": `amount > 0`,
		"bad":  `amount >`,
	})
	require.Error(t, err)

	_, ok := m.Get("good")
	assert.False(t, ok, "nothing registered when one expression fails")
}
