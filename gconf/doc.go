/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration entity stored under the
"_c:<package>" key. Configuration is loaded from the genesis file and can
later be changed by its owner using the update configuration handler.
*/
package gconf
