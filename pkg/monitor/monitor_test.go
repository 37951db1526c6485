package monitor

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRunner is a mock implementation of util.CommandRunner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	a := m.Called(name, args)
	out, _ := a.Get(0).([]byte)
	return out, a.Error(1)
}

const dualReport = `Screen 0: minimum 8 x 8, current 6400 x 2160, maximum 32767 x 32767
HDMI-0 connected 3840x2160+2560+0 (normal left inverted right x axis y axis) 600mm x 340mm
   3840x2160     60.00*+
DP-0 disconnected (normal left inverted right x axis y axis)
DP-4 connected primary 2560x1440+0+360 (normal left inverted right x axis y axis) 597mm x 336mm
   2560x1440     59.95*+
DP-5 connected (normal left inverted right x axis y axis)
`

func TestParse(t *testing.T) {
	t.Run("SingleConnectedIgnoresDisconnected", func(t *testing.T) {
		report := "eDP-1 connected primary 1920x1080+0+0 (normal) 344mm x 194mm\nHDMI-1 disconnected (normal left)\n"
		monitors := Parse(report)
		require.Len(t, monitors, 1)
		assert.Equal(t, Monitor{Name: "eDP-1", Width: 1920, Height: 1080, X: 0, Y: 0}, monitors[0])
	})

	t.Run("SortedLeftToRight", func(t *testing.T) {
		monitors := Parse(dualReport)
		require.Len(t, monitors, 2)
		assert.Equal(t, Monitor{Name: "DP-4", Width: 2560, Height: 1440, X: 0, Y: 360}, monitors[0])
		assert.Equal(t, Monitor{Name: "HDMI-0", Width: 3840, Height: 2160, X: 2560, Y: 0}, monitors[1])
	})

	t.Run("ConnectedWithoutGeometrySkipped", func(t *testing.T) {
		assert.Empty(t, Parse("DP-5 connected (normal left inverted right x axis y axis)\n"))
	})

	t.Run("MalformedGeometrySkipped", func(t *testing.T) {
		assert.Empty(t, Parse("DP-1 connected 1920x1080+0 (normal)\n"))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Parse(""))
	})
}

func TestMonitorRect(t *testing.T) {
	m := Monitor{Name: "DP-1", Width: 2560, Height: 1440, X: 1920, Y: 0}
	assert.Equal(t, image.Rect(1920, 0, 4480, 1440), m.Rect())
	assert.Equal(t, "DP-1 2560x1440+1920+0", m.String())
}

func TestDetect(t *testing.T) {
	cfg := config.Default()

	t.Run("Success", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Output", "xrandr", []string{"--query"}).Return([]byte(dualReport), nil)

		monitors, err := NewDetector(cfg, runner).Detect(context.Background())
		require.NoError(t, err)
		require.Len(t, monitors, 2)
		assert.Equal(t, "DP-4", monitors[0].Name)
		runner.AssertExpectations(t)
	})

	t.Run("ToolInvocationError", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Output", "xrandr", []string{"--query"}).Return(nil, errors.New("executable file not found"))

		_, err := NewDetector(cfg, runner).Detect(context.Background())
		assert.ErrorIs(t, err, ErrToolInvocation)
	})

	t.Run("ToolFailure", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Output", "xrandr", []string{"--query"}).
			Return(nil, &util.CommandError{Command: "xrandr --query", Stderr: "Can't open display\n"})

		_, err := NewDetector(cfg, runner).Detect(context.Background())
		var failure *ToolFailureError
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, "Can't open display\n", failure.Output)
		assert.Contains(t, err.Error(), "Can't open display")
	})

	t.Run("NoMonitorsFound", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Output", "xrandr", []string{"--query"}).Return([]byte("DP-0 disconnected\n"), nil)

		_, err := NewDetector(cfg, runner).Detect(context.Background())
		assert.ErrorIs(t, err, ErrNoMonitorsFound)
	})

	t.Run("CustomCommand", func(t *testing.T) {
		custom := config.Default()
		custom.MonitorCommand = []string{"xrandr-wrapper"}
		runner := new(MockRunner)
		runner.On("Output", "xrandr-wrapper", mock.Anything).Return([]byte("VGA-1 connected 1024x768+0+0\n"), nil)

		monitors, err := NewDetector(custom, runner).Detect(context.Background())
		require.NoError(t, err)
		assert.Len(t, monitors, 1)
	})
}
