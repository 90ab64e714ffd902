// Package pipeline defines the progress events the driver emits while it
// works through projects. The progress UI and tests consume them.
package pipeline
