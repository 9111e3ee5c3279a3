// Package mqttadapter binds a vehicle engine to an MQTT session (the
// paho.mqtt.golang client, which speaks MQTT 3.1.1, not MQTT 5): it
// subscribes to the vehicle's order/instantActions topics, dispatches
// decoded payloads into the engine, and runs the fixed-cadence
// publish loop that drives the engine's tick and snapshot cadence.
package mqttadapter

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vda5050-simulator/engine"
	"vda5050-simulator/protocol"
)

// BrokerConfig is the subset of configuration the adapter needs to
// reach the MQTT broker, independent of vehicle identity.
type BrokerConfig struct {
	Host          string
	Port          string
	VDAInterface  string
}

const publishTickInterval = 50 * time.Millisecond

// Adapter owns the two MQTT client connections (subscriber, publisher)
// for one vehicle engine and the goroutines that drive them. It does
// not need its own lock: every Engine method is already serialized
// against concurrent callers, including the status API.
type Adapter struct {
	broker BrokerConfig
	engine *engine.Engine
	topics protocol.Topics
	log    *logrus.Entry

	stop chan struct{}
	done chan struct{}
}

// New builds an adapter for engine e, deriving the vehicle's topic set
// from its identity.
func New(broker BrokerConfig, e *engine.Engine, log *logrus.Entry) *Adapter {
	identity := e.Identity()
	topics := protocol.BuildTopics(broker.VDAInterface, identity.VDAVersion, identity.Manufacturer, identity.SerialNumber)
	return &Adapter{
		broker: broker,
		engine: e,
		topics: topics,
		log:    log.WithField("serialNumber", identity.SerialNumber),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run starts the subscriber and publisher loops and blocks until the
// publisher loop exits: after Stop is called, or at once if the
// publisher client fails to connect.
func (a *Adapter) Run() {
	go a.runSubscriber()
	go a.runPublisher()
	<-a.done
}

// Stop signals both loops to exit.
func (a *Adapter) Stop() {
	close(a.stop)
}

func (a *Adapter) serverURI() string {
	return fmt.Sprintf("tcp://%s:%s", a.broker.Host, a.broker.Port)
}

func (a *Adapter) newClientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(a.serverURI())
	opts.SetClientID(uuid.NewString())
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Second)

	willPayload, err := json.Marshal(a.engine.InitialConnection())
	if err == nil {
		opts.SetWill(a.topics.Connection, string(willPayload), 1, false)
	}

	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		a.log.Warnf("MQTT connection lost, attempting to reconnect: %v", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		a.log.Info("MQTT client connected")
	})
	opts.SetReconnectingHandler(func(c mqtt.Client, opts *mqtt.ClientOptions) {
		a.log.Warn("attempting to reconnect to MQTT broker")
	})

	return opts
}

func (a *Adapter) connect(client mqtt.Client) error {
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (a *Adapter) runSubscriber() {
	client := mqtt.NewClient(a.newClientOptions())
	if err := a.connect(client); err != nil {
		a.log.Errorf("MQTT client failed to connect for subscription: %v", err)
		return
	}
	defer client.Disconnect(250)

	a.subscribe(client, a.topics.Order, a.handleOrder)
	a.subscribe(client, a.topics.InstantActions, a.handleInstantActions)

	<-a.stop
}

func (a *Adapter) subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) {
	token := client.Subscribe(topic, 1, handler)
	token.Wait()
	if token.Error() != nil {
		a.log.Errorf("failed to subscribe to %s: %v", topic, token.Error())
	}
}

func (a *Adapter) handleOrder(client mqtt.Client, msg mqtt.Message) {
	var order protocol.Order
	if err := json.Unmarshal(msg.Payload(), &order); err != nil {
		a.log.Warnf("error parsing order message: %v", err)
		return
	}
	a.engine.ProcessOrder(order, func(s string) { a.log.Info(s) })
}

func (a *Adapter) handleInstantActions(client mqtt.Client, msg mqtt.Message) {
	var instantActions protocol.InstantActions
	if err := json.Unmarshal(msg.Payload(), &instantActions); err != nil {
		a.log.Warnf("error parsing instant actions message: %v", err)
		return
	}
	a.engine.AcceptInstantActions(instantActions)
}

func (a *Adapter) runPublisher() {
	defer close(a.done)

	client := mqtt.NewClient(a.newClientOptions())
	if err := a.connect(client); err != nil {
		a.log.Errorf("MQTT client failed to connect for publishing: %v", err)
		return
	}
	defer client.Disconnect(250)

	a.publishConnectionLifecycle(client)

	settings := a.engine.Settings()
	stateCounter := 0
	visualizationCounter := 0
	ticker := time.NewTicker(publishTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.engine.Tick(func(s string) { a.log.Info(s) })

			tickMillis := int(publishTickInterval / time.Millisecond)
			stateCounter++
			if settings.StateFrequencyHz > 0 && stateCounter*tickMillis > 1000/settings.StateFrequencyHz {
				stateCounter = 0
				a.publishState(client)
			}

			visualizationCounter++
			if settings.VisualizationFrequencyHz > 0 && visualizationCounter*tickMillis > 1000/settings.VisualizationFrequencyHz {
				visualizationCounter = 0
				a.publishVisualization(client)
			}
		}
	}
}

// publishConnectionLifecycle publishes the engine's initial
// CONNECTIONBROKEN payload, waits one second, then publishes an
// incremented ONLINE snapshot.
func (a *Adapter) publishConnectionLifecycle(client mqtt.Client) {
	initial := a.engine.InitialConnection()
	a.publish(client, a.topics.Connection, initial)

	time.Sleep(1 * time.Second)

	a.engine.MarkOnline()
	online := a.engine.SnapshotConnection()
	a.publish(client, a.topics.Connection, online)
}

func (a *Adapter) publishState(client mqtt.Client) {
	state := a.engine.SnapshotState()
	a.publish(client, a.topics.State, state)
}

func (a *Adapter) publishVisualization(client mqtt.Client) {
	visualization := a.engine.SnapshotVisualization()
	a.publish(client, a.topics.Visualization, visualization)
}

func (a *Adapter) publish(client mqtt.Client, topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		a.log.Errorf("failed to marshal payload for %s: %v", topic, err)
		return
	}
	token := client.Publish(topic, 1, false, data)
	token.Wait()
	if token.Error() != nil {
		a.log.Errorf("failed to publish to %s: %v", topic, token.Error())
	}
}
