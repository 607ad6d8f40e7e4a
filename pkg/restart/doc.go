// Package restart lets a library raise a continuable error and have it
// resolved by handlers registered against a hierarchy of error kinds, in the
// spirit of Lisp restarts.
//
// Handlers are kept per kind in a Block, a LIFO array chained to the block of
// the parent kind, so a lookup walks from the most specific kind to the root
// and, within a kind, from the newest handler to the oldest. The first
// handler that restarts supplies the result; if all decline, the raiser's own
// fallback error is returned unchanged.
//
//	tree := restart.MustTree(KindError, map[Kind]Kind{
//		KindParse: KindError,
//		KindToken: KindParse,
//	})
//	reg, _ := restart.NewRegistry[Kind, Token, string](tree)
//	_, _ = reg.Register(KindParse, restart.UseValue[Token]("owl:Thing"))
//
//	v, err := reg.Dispatch(ctx, restart.NewContinuableError("unknown token", "", tok), KindToken, errBadToken)
package restart
