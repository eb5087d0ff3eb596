/*
Package runner implements the interactive chat loop for running a flow in a terminal
or as a headless JSON-lines process.

It bridges an Interpreter and the outside world: each turn's new bot messages go to
an IOHandler, the participant's reply is read back, sanitized, and fed into the next
turn until the conversation ends. When a session.Manager is configured every turn
is persisted, so an interrupted conversation resumes where it stopped.

# Usage

	r := runner.NewRunner(
		runner.WithConversationID("user-1"),
		runner.WithSessions(session.NewManager(file.NewStore(""))),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, engine, "welcome"); err != nil {
		log.Fatal(err)
	}
*/
package runner
