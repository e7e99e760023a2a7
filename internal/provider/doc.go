// Package provider defines service providers and the bookkeeping around them.
//
// A provider is any Go value. Its capabilities are the interfaces it
// satisfies: Registerer, Booter and Readier take part in bootstrap;
// Installer, Refresher and Uninstaller make up the install track whose
// outcome is persisted in State; Aggregate, CommandSource, DefinitionSource
// and ExtensionSource contribute sub-providers, console commands and
// container definitions.
//
// Providers named in configuration are built through a Catalog. Normalize
// expands a declaration list breadth first, and Registry keeps the result
// in registration order with one Loaded flag per identity.
package provider
