// Package szaudit embeds the safezone audit collector: it pulls audit
// records from the vendor safezone API per configured input, flattens them
// into normalized events, and emits them to the configured sink with
// checkpointed, at-least-once incremental collection.
//
// Quick start:
//
//	c, err := szaudit.FromConfigFile("szaudit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	for _, res := range c.RunOnce(context.Background()) {
//	    fmt.Println(res.Input, res.Events, res.Err)
//	}
//
// Call Run instead of RunOnce to keep collecting on each input's interval
// until the context is cancelled.
package szaudit
