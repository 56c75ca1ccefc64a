package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GeneratePDFPreview(r io.Reader, maxPages int) ([]byte, error) {
	args := m.Called(r, maxPages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
