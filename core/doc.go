// Package core holds the NEO trigger domain: settings, the webhook registrar
// lifecycle and inbound callback validation. Transport and storage adapters
// depend on this package; core never imports them.
package core
