package wallpaper

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockInstaller is a mock implementation of the Installer interface.
type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Install(ctx context.Context, imagePath string) error {
	args := m.Called(imagePath)
	return args.Error(0)
}

// MockRunner is a mock implementation of util.CommandRunner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	a := m.Called(name, args)
	out, _ := a.Get(0).([]byte)
	return out, a.Error(1)
}
