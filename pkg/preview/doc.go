// Package preview serves the theme for local development. Pages render from
// mock kcContexts, form posts are echoed back the way Keycloak would receive
// them, and a websocket tells open browsers to reload when watched files
// change.
//
//	GET  /                   index of mock pages
//	GET  /pages/{page}       render a mock (locale, variant, theme, renderer query params)
//	POST /pages/{page}       echo the posted form
//	POST /appearance         store the appearance cookie
//	GET  /assets/            embedded stylesheet and runtime
//	GET  /livereload         reload notifications
//	GET  /metrics            Prometheus metrics
package preview
