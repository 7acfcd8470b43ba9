package types

// AliasTable maps alias names to types, seeded with the primitive
// number kinds and the sentinel types so `type Name = <type>` can
// reference them immediately (§3, §4.2).
type AliasTable struct {
	aliases map[string]Type
}

// NewAliasTable returns an AliasTable seeded with every primitive.
func NewAliasTable() *AliasTable {
	t := &AliasTable{aliases: make(map[string]Type)}
	for kind, typ := range Primitives {
		t.aliases[kind.String()] = typ
	}
	t.aliases["void"] = Void
	t.aliases["bool"] = Primitives[I1]
	return t
}

// Define registers name -> typ. It reports whether name was already
// defined (callers reject redefinition as a name collision, §7).
func (t *AliasTable) Define(name string, typ Type) bool {
	if _, exists := t.aliases[name]; exists {
		return false
	}
	t.aliases[name] = typ
	return true
}

// Lookup resolves an alias name to its type.
func (t *AliasTable) Lookup(name string) (Type, bool) {
	typ, ok := t.aliases[name]
	return typ, ok
}

// IsDefined reports whether name is already registered (primitive,
// struct, enum or user alias).
func (t *AliasTable) IsDefined(name string) bool {
	_, ok := t.aliases[name]
	return ok
}
