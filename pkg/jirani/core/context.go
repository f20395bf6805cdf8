package core

type ctxKey string

const (
	CtxKeyMemberID ctxKey = ctxKey("memberId")
	CtxKeyUsername ctxKey = ctxKey("username")
)
