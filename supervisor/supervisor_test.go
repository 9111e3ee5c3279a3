package supervisor

import (
	"testing"

	"github.com/sirupsen/logrus"

	"vda5050-simulator/config"
)

func testConfig(robotCount int) *config.Config {
	return &config.Config{
		MQTTBroker: config.MQTTBrokerConfig{Host: "localhost", Port: "1883", VDAInterface: "uagv"},
		Vehicle: config.VehicleConfig{
			Manufacturer:   "TEST",
			SerialNumber:   "AGV",
			VDAVersion:     "v2",
			VDAFullVersion: "2.0.0",
		},
		Settings: config.Settings{
			ActionTime:               1,
			Speed:                    0.1,
			RobotCount:               robotCount,
			StateFrequencyHz:         1,
			VisualizationFrequencyHz: 5,
			MapID:                    "map_1",
		},
	}
}

func TestNewSpawnsConfiguredRobotCount(t *testing.T) {
	s := New(testConfig(3), logrus.New())
	if s.RobotCount() != 3 {
		t.Errorf("got %d adapters, want 3", s.RobotCount())
	}
}

func TestNewClampsZeroRobotCountToOne(t *testing.T) {
	s := New(testConfig(0), logrus.New())
	if s.RobotCount() != 1 {
		t.Errorf("got %d adapters, want 1", s.RobotCount())
	}
}

func TestNewRegistersEachEngineUnderSuffixedSerialNumber(t *testing.T) {
	s := New(testConfig(2), logrus.New())
	robots := s.Registry()

	for _, want := range []string{"AGV-001", "AGV-002"} {
		if _, ok := robots.Get(want); !ok {
			t.Errorf("expected registry to contain %q", want)
		}
	}
}
