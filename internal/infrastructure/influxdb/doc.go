// Package influxdb writes devmodel metrics to InfluxDB v2.
//
// It wraps influxdb-client-go with the connection handling used across
// the daemon (ping on connect, batched non-blocking writes, an error
// callback for asynchronous failures) and two measurements:
//
//	device_lifecycle  one point per lifecycle event (machine, event, driver)
//	device_tree       device and bus counts after every change
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTreeStats("sample", 6, 3, false)
package influxdb
