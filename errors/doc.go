/*
Package errors implements the error handling used by the vault application.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary.

If you want to register a custom error - use Register(code, description).
For reusing errors - use Errxxx.New and Errxxx.Newf, or Wrap/Wrapf.
Code stands for ABCI error code, which allows to distinguish types of errors
on the client side and act accordingly.

A stack trace is attached at the first wrap. Use fmt with %+v to print it.
*/
package errors
