/*
Package timelock implements balances with a delayed withdrawal.

An owner deposits funds into a time lock balance. Every withdrawal from
that balance must first be requested. The request can be completed only
after the review period of the balance has elapsed, and until then the
owner can abort it. Requesting a withdrawal does not reserve any funds:
several requests may together exceed the balance and only those that can
be satisfied when completed succeed.

Funds of a balance are held in the cash wallet of the balance condition
address, so the wallet of that address always holds exactly the balance
amount.
*/
package timelock
