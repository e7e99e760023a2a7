// Package container is the resolvable registry the application builds once
// from the definition sets contributed by its internals and its providers.
//
//	b := container.NewBuilder()
//	b.AddDefinitions("internal", container.Definitions{
//		"config": container.Value(cfg),
//		"mailer": container.Singleton(func(c *container.Container) (any, error) {
//			cfg, err := container.Resolve[*store.Store](c, "config")
//			if err != nil {
//				return nil, err
//			}
//			return mail.New(cfg.GetString("mail.driver", "smtp")), nil
//		}),
//	})
//	c, err := b.Build()
//
// After Build the container still accepts Set, Define and Extend for late
// registrations. With compilation enabled the builder also writes a zstd
// snapshot of the definition graph; resolution never reads it.
package container
