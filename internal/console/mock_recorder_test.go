package console

import (
	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockRecorder est un mock pour l'interface Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Append(level models.Level, source models.Source, args []any) (models.LogEntry, bool) {
	ret := m.Called(level, source, args)
	return ret.Get(0).(models.LogEntry), ret.Bool(1)
}

// panicRecorder simule un store défaillant.
type panicRecorder struct{}

func (panicRecorder) Append(models.Level, models.Source, []any) (models.LogEntry, bool) {
	panic("store exploded")
}

// failWriter échoue systématiquement à l'écriture.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

// sliceRecorder est un recorder passé par valeur dont le type n'est pas comparable.
type sliceRecorder struct {
	seen []string
}

func (sliceRecorder) Append(models.Level, models.Source, []any) (models.LogEntry, bool) {
	return models.LogEntry{}, true
}
