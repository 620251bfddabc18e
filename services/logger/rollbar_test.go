package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), core.NewTestConfig())
	errBoom := errors.New("boom")
	extras := map[string]interface{}{"student_id": "std-1"}

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "msg only", want: []interface{}{"msg"}},
		{name: "error and extras", args: []interface{}{errBoom, extras}, want: []interface{}{"msg", errBoom, extras}},
		{
			name: "actors are dropped",
			args: []interface{}{document.Actor{ID: "u-1", Name: "Directrice"}, errBoom, document.Actor{ID: "u-2"}},
			want: []interface{}{"msg", errBoom},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.prepare("msg", tt.args))
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	var out bytes.Buffer
	logger := NewRollbarLogger(log.New(&out, "TEST : ", 0), core.NewTestConfig())

	logger.Info("document approved", map[string]string{"type": "school_record"})
	assert.Equal(t, "TEST : document approved\nTEST : map[type:school_record]\n", out.String())
}
