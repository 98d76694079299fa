package pkg

const ModuleName = "execution"
