package pkg

const ModuleName = "chat"
