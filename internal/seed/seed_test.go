package seed

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates(t *testing.T) {
	specs, err := DefaultTemplates()
	require.NoError(t, err)

	require.Len(t, specs, 3)
	assert.Equal(t, TemplateSpec{Title: "Thiền 10 phút", Quadrant: "schedule", OrderIndex: 1}, specs[0])
	assert.Equal(t, TemplateSpec{Title: "Xem lại plan ngày", Quadrant: "do_now", OrderIndex: 2}, specs[1])
	assert.Equal(t, TemplateSpec{Title: "Ghi nhật ký 5 phút", Quadrant: "schedule", OrderIndex: 3}, specs[2])
}

func TestParseTemplatesErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown quadrant", "templates:\n  - title: Run\n    quadrant: someday\n"},
		{"unknown key", "templates:\n  - title: Run\n    quadrant: do_now\n    colour: red\n"},
		{"not yaml", "templates: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplates([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestBuildTemplates(t *testing.T) {
	userID := uuid.New()
	specs, err := DefaultTemplates()
	require.NoError(t, err)

	tpls, err := BuildTemplates(userID, specs)
	require.NoError(t, err)
	require.Len(t, tpls, 3)
	for _, tpl := range tpls {
		assert.Equal(t, userID, tpl.UserID)
		assert.True(t, tpl.IsActive)
		assert.False(t, tpl.ActivatedAt.IsZero())
	}
	assert.Equal(t, domain.QuadrantDoNow, tpls[1].Quadrant)

	_, err = BuildTemplates(userID, []TemplateSpec{{Title: " ", Quadrant: "do_now"}})
	assert.ErrorIs(t, err, domain.ErrTemplateTitleEmpty)
}
