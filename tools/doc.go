// Package tools is the built-in tool source. Every file registers its tools
// with the default registry catalog from init, so adding a tool means adding
// a file here; nothing else has to change.
package tools
