/*
Package x contains the extensions the vault application is built from.

Extensions implement common functionality (Handler, Decorator,
etc.) and can be combined together to construct an application.
This package holds the helpers shared by all of them, most
importantly the Authenticator abstraction.
*/
package x
