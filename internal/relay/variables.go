package relay

// Allow tests to stub dialing and command execution
var (
	dialSSHFunc          = dialSSH
	runRemoteCommandFunc = runRemoteCommand
)
