package services

import (
	"testing"

	"svco-apply/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeeService() *FeeService {
	return NewFeeService(FeeTable{Base: 2000, Increment: 1000, MaxCofounders: 5})
}

func TestFee_BaseCoversUpToOneCofounder(t *testing.T) {
	svc := newTestFeeService()

	solo, err := svc.Fee(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), solo)

	pair, err := svc.Fee(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pair)
}

func TestFee_TwoCofounders(t *testing.T) {
	svc := newTestFeeService()

	fee, err := svc.Fee(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), fee)
}

func TestFee_MonotonicInTeamSize(t *testing.T) {
	svc := newTestFeeService()

	prev := int64(0)
	for count := 0; count <= svc.MaxCofounders(); count++ {
		fee, err := svc.Fee(count)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fee, prev, "fee must never decrease as the team grows")
		prev = fee
	}
}

func TestFee_RejectsNegativeCount(t *testing.T) {
	svc := newTestFeeService()

	_, err := svc.Fee(-1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFee_RejectsCountAboveMax(t *testing.T) {
	svc := newTestFeeService()

	_, err := svc.Fee(svc.MaxCofounders() + 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
