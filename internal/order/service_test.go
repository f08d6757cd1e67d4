package order

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/common"
)

func TestCheckTypeCapsEnforcesPerTypeLimit(t *testing.T) {
	caps := map[string]int32{"drink": 1}
	types := map[string]string{"s1": "drink", "s2": "drink", "s3": "food"}

	err := checkTypeCaps(types, caps)
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOO_MANY_SHOPS", appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
}

func TestCheckTypeCapsIgnoresUncappedTypes(t *testing.T) {
	caps := map[string]int32{"drink": 1}

	assert.NoError(t, checkTypeCaps(map[string]string{"s1": "food", "s2": "food", "s3": "food"}, caps))
	assert.NoError(t, checkTypeCaps(map[string]string{"s1": "drink"}, caps))
	assert.NoError(t, checkTypeCaps(nil, caps))
}
