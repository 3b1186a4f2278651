package extension

// Registry holds constructed extension instances, one ordered list per
// capability. It is populated during startup wiring and read-only
// afterwards; registration order is significant and preserved.
//
// The registry is passed explicitly to the orchestrator and the command bus
// (no package-level state), so independent instances never alias.
type Registry struct {
	commandProcessors []CommandProcessor
	triggers          []ConversationalTrigger
	contexts          []Context
	messageHandlers   []MessageHandler
	retrievers        []RetrievalAugmentation
	preprocessors     []ResponsePreprocessor
	ipcCommands       []InterProcessCommand
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterCommandProcessor(ext CommandProcessor) {
	r.commandProcessors = append(r.commandProcessors, ext)
}

func (r *Registry) RegisterTrigger(ext ConversationalTrigger) {
	r.triggers = append(r.triggers, ext)
}

func (r *Registry) RegisterContext(ext Context) {
	r.contexts = append(r.contexts, ext)
}

func (r *Registry) RegisterMessageHandler(ext MessageHandler) {
	r.messageHandlers = append(r.messageHandlers, ext)
}

func (r *Registry) RegisterRetriever(ext RetrievalAugmentation) {
	r.retrievers = append(r.retrievers, ext)
}

func (r *Registry) RegisterPreprocessor(ext ResponsePreprocessor) {
	r.preprocessors = append(r.preprocessors, ext)
}

func (r *Registry) RegisterIPCCommand(ext InterProcessCommand) {
	r.ipcCommands = append(r.ipcCommands, ext)
}

func (r *Registry) CommandProcessors() []CommandProcessor  { return r.commandProcessors }
func (r *Registry) Triggers() []ConversationalTrigger      { return r.triggers }
func (r *Registry) Contexts() []Context                    { return r.contexts }
func (r *Registry) MessageHandlers() []MessageHandler      { return r.messageHandlers }
func (r *Registry) Retrievers() []RetrievalAugmentation    { return r.retrievers }
func (r *Registry) Preprocessors() []ResponsePreprocessor  { return r.preprocessors }
func (r *Registry) IPCCommands() []InterProcessCommand     { return r.ipcCommands }

// MessageHandlerFor returns the first handler declaring messageType that
// applies to platform, or nil.
func (r *Registry) MessageHandlerFor(platform, messageType string) MessageHandler {
	for _, mh := range r.messageHandlers {
		if !Applies(mh, platform) {
			continue
		}
		for _, mt := range mh.MessageTypes() {
			if mt == messageType {
				return mh
			}
		}
	}
	return nil
}
