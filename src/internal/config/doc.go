// Package config handles the netpolicy configuration file and the option
// store built on top of it.
//
// The configuration file is TOML:
//
//	config_version = 2
//
//	[general]
//	  profile_dir = "profile"
//	  user_agents_file = "useragents.toml"
//	  api_bind_address = "127.0.0.1:8089"
//
//	[network]
//	  accept_language = "en-US,en;q=0.8"
//	  do_not_track = "doNotAllow"
//	  enable_referrer = false
//	  working_offline = false
//	  use_system_proxy_authentication = false
//	  user_agent = "firefox"
//
//	[cache]
//	  disk_cache_limit_kb = 51200
//
//	[security]
//	  ciphers = ["default"]
//
// # Option Store
//
// Store exposes the policy options under browser-style keys such as
// "Network/AcceptLanguage" or "Network/WorkingOffline". Observers registered
// with Subscribe receive one OptionChange per changed key, carrying the old
// and the new value. Mutations are serialized, so observers never run
// concurrently with each other.
//
//	store := config.NewStore(cfg)
//	unsubscribe := store.Subscribe(func(c config.OptionChange) {
//	    log.Infof("%s: %v -> %v", c.Key, c.OldValue, c.NewValue)
//	})
//	defer unsubscribe()
//	_ = store.Set(config.OptionWorkingOffline, true)
//
// Watcher polls the configuration file and applies external edits to the
// store.
package config
