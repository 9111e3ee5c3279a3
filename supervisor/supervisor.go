// Package supervisor spawns and owns the fleet of simulated vehicles:
// one (engine, mqttadapter) pair per configured robot, each running
// independently with no shared mutable state between vehicles.
package supervisor

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"vda5050-simulator/config"
	"vda5050-simulator/engine"
	"vda5050-simulator/mqttadapter"
	"vda5050-simulator/statusapi"
)

// Supervisor owns every spawned vehicle's adapter and the registry the
// status API reads from.
type Supervisor struct {
	adapters []*mqttadapter.Adapter
	registry *statusapi.Registry
	log      *logrus.Logger

	wg sync.WaitGroup
}

// New builds a Supervisor that will spawn cfg.Settings.RobotCount
// vehicles on Run, each with serial number cfg.Vehicle.SerialNumber
// suffixed by its 1-based index.
func New(cfg *config.Config, log *logrus.Logger) *Supervisor {
	s := &Supervisor{registry: statusapi.NewRegistry(), log: log}

	robotCount := cfg.Settings.RobotCount
	if robotCount < 1 {
		robotCount = 1
	}

	for i := 0; i < robotCount; i++ {
		serialNumber := fmt.Sprintf("%s-%03d", cfg.Vehicle.SerialNumber, i+1)

		identity := engine.Identity{
			Manufacturer:   cfg.Vehicle.Manufacturer,
			SerialNumber:   serialNumber,
			VDAVersion:     cfg.Vehicle.VDAVersion,
			VDAFullVersion: cfg.Vehicle.VDAFullVersion,
			MapID:          cfg.Settings.MapID,
		}
		settings := engine.Settings{
			ActionTime:               cfg.Settings.ActionTime,
			Speed:                    cfg.Settings.Speed,
			StateFrequencyHz:         cfg.Settings.StateFrequencyHz,
			VisualizationFrequencyHz: cfg.Settings.VisualizationFrequencyHz,
		}

		e := engine.New(identity, settings)
		s.registry.Register(e)

		broker := mqttadapter.BrokerConfig{
			Host:         cfg.MQTTBroker.Host,
			Port:         cfg.MQTTBroker.Port,
			VDAInterface: cfg.MQTTBroker.VDAInterface,
		}
		a := mqttadapter.New(broker, e, log.WithField("robot", serialNumber))
		s.adapters = append(s.adapters, a)
	}

	return s
}

// Registry returns the status API registry tracking every spawned
// engine.
func (s *Supervisor) Registry() *statusapi.Registry {
	return s.registry
}

// RobotCount reports how many vehicles were spawned.
func (s *Supervisor) RobotCount() int {
	return len(s.adapters)
}

// Run starts every vehicle's adapter in its own goroutine and returns
// immediately; call Stop to shut every vehicle down.
func (s *Supervisor) Run() {
	for _, a := range s.adapters {
		s.wg.Add(1)
		go func(a *mqttadapter.Adapter) {
			defer s.wg.Done()
			a.Run()
		}(a)
	}
}

// Stop signals every vehicle's adapter to stop and waits for all of
// them to exit.
func (s *Supervisor) Stop() {
	for _, a := range s.adapters {
		a.Stop()
	}
	s.wg.Wait()
}
