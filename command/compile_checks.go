package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SwitchProviderMessage]        = (*SwitchProviderCommand)(nil)
	_ gocmd.Commander[SendMessageMessage]           = (*SendMessageCommand)(nil)
	_ gocmd.Commander[ClearCredentialMessage]       = (*ClearCredentialCommand)(nil)
	_ gocmd.Commander[ClearHistoryMessage]          = (*ClearHistoryCommand)(nil)
	_ gocmd.Commander[RevalidateCredentialsMessage] = (*RevalidateCredentialsCommand)(nil)
)
