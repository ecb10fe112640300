/*
Package loader reads flow definitions from YAML (or JSON) files.

A file names its conditions as expr-lang expressions evaluated against the
map context of a session, and declares the tree under states:

	name: free-beer
	conditions:
	  hasEnteredAge: "age != nil"
	  isOfLegalDrinkingAge: "age != nil && age >= 18"
	states:
	  - id: "How old are you?"
	    is_done: [hasEnteredAge]
	  - fork: "Is old enough"
	    requirements: [isOfLegalDrinkingAge, {expr: "name != 'blocked'"}]
	    states:
	      - id: "What is your name?"

A condition item is either the name of a condition or an inline {expr, name}
mapping. Documents are checked against Schema before they are decoded.
*/
package loader
