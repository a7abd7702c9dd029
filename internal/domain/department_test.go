package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepartment(t *testing.T) {
	cases := []struct {
		raw  string
		want Department
	}{
		{"it", DepartmentIT},
		{"IT", DepartmentIT},
		{"  hr\n", DepartmentHR},
		{"Admin", DepartmentAdmin},
	}
	for _, tc := range cases {
		got, err := ParseDepartment(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseDepartment_OutOfSet(t *testing.T) {
	for _, raw := range []string{"", "finance", "it department", "unknown"} {
		_, err := ParseDepartment(raw)
		assert.Error(t, err, raw)
	}
}

func TestDepartmentValid(t *testing.T) {
	for _, dept := range AllDepartments() {
		assert.True(t, dept.Valid())
	}
	assert.False(t, Department("legal").Valid())
}
