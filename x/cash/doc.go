/*
Package cash defines a simple implementation of sending coins
between wallets.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

Besides the send message, this package provides the fee decorator.
Each message path can be configured with a minimal fee that must be
paid by the message fee payer. Collected fees are sent to the
collector address. Both are configured via the gconf package.
*/
package cash
