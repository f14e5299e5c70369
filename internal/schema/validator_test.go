package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidate_List(t *testing.T) {
	v := newValidator(t)

	events, err := v.Validate([]byte(`[{"key00":"value00"},{"key10":"value10"},{"key20":"value20"},{"key30":"value30"}]`))

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.JSONEq(t, `{"key00":"value00"}`, string(events[0]))
	assert.JSONEq(t, `{"key30":"value30"}`, string(events[3]))
}

func TestValidate_SingleObjectIsWrapped(t *testing.T) {
	v := newValidator(t)

	events, err := v.Validate([]byte(` {"key00": "value00"} `))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"key00":"value00"}`, string(events[0]))
}

func TestValidate_EmptyList(t *testing.T) {
	v := newValidator(t)

	events, err := v.Validate([]byte(`[]`))

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestValidate_Errors(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		name string
		body string
		want error
	}{
		{"truncated", `{`, ErrInvalidJSON},
		{"empty", ``, ErrInvalidJSON},
		{"trailing garbage", `{"a":1} x`, ErrInvalidJSON},
		{"bare string", `"value"`, ErrSchemaViolation},
		{"list of strings", `["value"]`, ErrSchemaViolation},
		{"number", `42`, ErrSchemaViolation},
		{"mixed list", `[{"a":1}, 2]`, ErrSchemaViolation},
		{"null", `null`, ErrSchemaViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate([]byte(tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
