// Package mqtt connects a devmodel machine to an MQTT broker.
//
// The broker is the machine's remote surface: lifecycle events are published
// under devmodel/{machine}/event/{type}, the rendered tree is kept retained on
// devmodel/{machine}/tree, and control requests arrive on
// devmodel/{machine}/request/{command} with answers on
// devmodel/{machine}/response/{id}.
//
//	devmodel ──publish──► broker ──► dashboards, scripts
//	    ▲                   │
//	    └────subscribe──────┘  device_add / device_del / show / qtree
//
// # Connection handling
//
//   - Auto-reconnect with backoff from cfg.Reconnect
//   - Subscriptions restored after reconnect
//   - Retained status (online / offline) plus a Last Will for crashes
//   - TLS 1.2+ when cfg.Broker.TLS is set
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Machine.Name)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        fmt.Printf("%s %s\n", topic, payload)
//	        return nil
//	    })
package mqtt
