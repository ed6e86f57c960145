package types

// Assignable reports whether a value of type from can be assigned to a
// location of type to. It is conservative in the permissive direction:
// whenever the model cannot decide, it answers true.
func Assignable(from, to *Type) bool {
	if from.IsAnyLike() || to.IsAnyLike() {
		return true
	}
	if from.Kind == Never {
		return true
	}

	if from.Kind == Union {
		for _, m := range from.Types {
			if !Assignable(m, to) {
				return false
			}
		}
		return true
	}
	if to.Kind == Union {
		for _, m := range to.Types {
			if Assignable(from, m) {
				return true
			}
		}
		return false
	}
	if to.Kind == Intersection || from.Kind == Intersection {
		return true
	}

	switch to.Kind {
	case String:
		return from.Kind == String || from.Kind == StringLiteral
	case Number:
		return from.Kind == Number || from.Kind == NumberLiteral
	case Boolean:
		return from.Kind == Boolean || from.Kind == BooleanLiteral
	case StringLiteral, NumberLiteral, BooleanLiteral:
		return from.Kind == to.Kind && from.Value == to.Value
	case Null, Undefined, Void:
		return from.Kind == to.Kind || to.Kind == Void && from.Kind == Undefined
	case Array:
		if from.Kind == Tuple {
			return true
		}
		return from.Kind == Array && Assignable(from.Elem, to.Elem)
	case Tuple:
		return from.Kind == Tuple || from.Kind == Array
	case Object:
		return !isPrimitive(from)
	case Function:
		return from.Kind == Function || from.Kind == Reference
	case Reference:
		if from.Kind == Reference {
			return from.Name == to.Name || !knownReference(to.Name)
		}
		// A primitive is never an instance of a named class we know about.
		return !isPrimitive(from) || !knownReference(to.Name)
	}
	return from.Kind == to.Kind
}

func isPrimitive(t *Type) bool {
	switch t.Kind {
	case String, Number, Boolean, BigInt, StringLiteral, NumberLiteral, BooleanLiteral, Null, Undefined, Void:
		return true
	}
	return false
}

// knownReference lists reference names whose instances are certainly
// objects. Other references may be type aliases for primitives, so the model
// does not reject assignments to them.
func knownReference(name string) bool {
	switch name {
	case "Date", "Map", "Set", "RegExp", "Promise", "HTMLElement", "Element", "Node",
		"Event", "CustomEvent", "Record", "WeakMap", "WeakSet":
		return true
	}
	return false
}
