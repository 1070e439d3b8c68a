// Package engine evaluates parsed Marefiles.
//
// Every key of a Marefile denotes a [Namespace]: the set of words produced by
// executing the key's value. Values are executed lazily, the first time a
// namespace's keys are needed, and at most once. A key that is assigned more
// than once keeps every binding in a shadow chain, newest first; a value
// that refers to its own key (such as "cflags += -g") sees the older
// bindings, and a value that refers back to itself through other keys sees
// nothing instead of recursing forever.
//
// Names resolve through the enclosing namespaces. A binding found in an
// ancestor is evaluated again in the namespace that asked for it, which lets
// a template such as a compiler command pick up the platform,
// configuration and target it is used in.
//
// String values may contain substitutions:
//
//	$(name)                      words of key name
//	$(patsubst %.c,%.o,text)     pattern replacement per word
//	$(subst from,to,text)        text replacement
//	$(firstword text)            first word
//	$(filter %.c %.h,text)       words matching any pattern
//	$(filter-out %.c,text)       words matching no pattern
//	$(foreach var,list,body)     body for every word of list
//	$(readfile path)             file contents
//	$(if cond,then,else)         conditional
//
// Words containing '*' or '?' are file patterns. They are replaced by the
// matching files, with "**" matching any number of directories.
package engine
