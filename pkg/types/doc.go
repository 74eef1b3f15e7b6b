// Package types defines the Mapping contract shared by every mapping variant,
// its optional capability interfaces, the standard errors, and the
// configuration consumed by the mapctl tool and the metadata store.
package types
