package language

// SystemLanguageID is the fallback language used whenever an order has no
// resolvable customer language and as the last step of translation lookup.
const SystemLanguageID = "en-GB"
