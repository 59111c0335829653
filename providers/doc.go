// Package providers contains the built-in provider implementations. The set
// is closed: providers are assembled from definitions at build time and
// registered through DefaultRegistry, never discovered at runtime.
package providers
