// Package factory is the generic registry behind pluggable modules such as
// metrics sinks and alert publishers. A module is selected in configuration
// by a type name plus raw settings; its factory decodes the settings into a
// typed struct and returns the implementation.
//
//	_ = alerts.RegisterPublisher("mqtt", func(conf map[string]any) (alerts.Publisher, error) {
//	    var c mqtt.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return mqtt.NewAlertPublisher(c)
//	})
package factory
