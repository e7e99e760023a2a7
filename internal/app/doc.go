// Package app is the application orchestrator.
//
// An Application owns three stores (config, paths and urls), the event
// dispatcher, the provider registry and the container. Bootstrap moves it
// through Uninitialized, Bootstrapping and Ready exactly once:
//
//	a := app.New(app.Options{Catalog: catalog})
//	if err := a.Bootstrap(ctx, "/srv/site", "https://example.com"); err != nil {
//	    return err
//	}
//	mailer, err := container.Resolve[*Mailer](a.Container(), "mailer")
//
// Configuration comes from manifest files registered with RegisterConfig
// (or APP_CONFIG). Directories map to nested keys: config/mail/driver.json
// is readable as "mail.driver". The app.* keys declare paths, URLs, aliases,
// providers, definitions and commands.
//
// Providers follow two tracks. Registration and boot happen on every start,
// once per identity. Install, refresh and uninstall run on demand and their
// outcome is persisted in the installation file under storage.
//
// # Caching
//
// With APP_OPTIMIZE on (the default) and the cache directories created by
// Install, the merged configuration is compiled to cache.config, every
// manifest to cache.manifests and a description of the container to
// cache.container. ClearCache empties them. APP_DEBUG bypasses the manifest
// cache.
package app
