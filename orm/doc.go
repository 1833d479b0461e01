/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains a single type of entity, stored under
"<bucket>:<key>". Secondary indexes are maintained next to the data
and kept up to date on every write.
*/
package orm
