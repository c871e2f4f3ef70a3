package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAssets = []domain.Asset{
	{ID: "a1", Address: "Avenida de la Libertad 12, Murcia"},
	{ID: "a2", Address: "C/ Mayor, 5", Alias: "Calle Mayor 5"},
	{ID: "a3", Address: "Calle Mayor 5, 2ºB"},
}

func TestResolveAsset_MatchesThroughAliasAndNormalization(t *testing.T) {
	asset, ok := ResolveAsset("Calle Mayor 5", testAssets)
	require.True(t, ok)
	assert.Equal(t, "a2", asset.ID)

	asset, ok = ResolveAsset("c/ MAYOR 5", testAssets)
	require.True(t, ok)
	assert.Equal(t, "a2", asset.ID)
}

func TestResolveAsset_FirstMatchInInputOrderWins(t *testing.T) {
	assets := []domain.Asset{
		{ID: "x", Address: "Calle Mayor 5, 2ºB"},
		{ID: "y", Address: "Calle Mayor 5, 3ºA"},
	}
	asset, ok := ResolveAsset("calle mayor 5", assets)
	require.True(t, ok)
	assert.Equal(t, "x", asset.ID)
}

func TestResolveAsset_NoMatch(t *testing.T) {
	_, ok := ResolveAsset("Gran Via 1", testAssets)
	assert.False(t, ok)

	_, ok = ResolveAsset("  ,.- ", testAssets)
	assert.False(t, ok, "punctuation-only address must not match everything")
}

func TestResolveAssetUseCase_ReportsUnresolvedAddress(t *testing.T) {
	remote := new(mockRemoteSystem)
	remote.On("ListAssets", mock.Anything).Return(testAssets, nil)

	uc := NewResolveAssetUseCase(remote)
	_, err := uc.Execute(context.Background(), "Plaza Nueva 9")

	var notResolved *domain.AssetNotResolvedError
	require.True(t, errors.As(err, &notResolved))
	assert.Equal(t, "Plaza Nueva 9", notResolved.Address)
	assert.Contains(t, err.Error(), "Plaza Nueva 9")
	remote.AssertExpectations(t)
}

func TestResolveAssetUseCase_PropagatesRemoteFailure(t *testing.T) {
	remote := new(mockRemoteSystem)
	remote.On("ListAssets", mock.Anything).Return(nil, domain.ErrRemoteUnavailable)

	_, err := NewResolveAssetUseCase(remote).Execute(context.Background(), "Calle Mayor 5")

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}
